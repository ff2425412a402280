package component

// Tuning holds the tunables of the action behaviors. DefaultTuning is the
// compiled-in baseline; tuning.yaml overrides only the keys it sets.
type Tuning struct {
	Move        MoveTuning        `yaml:"move"`
	Idle        IdleTuning        `yaml:"idle"`
	Teeter      TeeterTuning      `yaml:"teeter"`
	Jump        JumpTuning        `yaml:"jump"`
	Gravity     GravityTuning     `yaml:"gravity"`
	Climb       ClimbTuning       `yaml:"climb"`
	Ledge       LedgeTuning       `yaml:"ledge"`
	Look        LookTuning        `yaml:"look"`
	Trile       TrileTuning       `yaml:"trile"`
	Swim        SwimTuning        `yaml:"swim"`
	Door        DoorTuning        `yaml:"door"`
	Treasure    TreasureTuning    `yaml:"treasure"`
	FirstPerson FirstPersonTuning `yaml:"first_person"`
	DiePanic    DiePanicTuning    `yaml:"die_panic"`
	Crush       CrushTuning       `yaml:"crush"`
	Hurt        HurtTuning        `yaml:"hurt"`
	Camera      CameraTuning      `yaml:"camera"`
	Pickup      PickupTuning      `yaml:"pickup"`
	Liquid      LiquidTuning      `yaml:"liquid"`
}

type MoveTuning struct {
	DefaultSpeed      float64 `yaml:"default_speed"`
	LightFactor       float64 `yaml:"light_factor"`
	HeavyFactor       float64 `yaml:"heavy_factor"`
	RunFactor         float64 `yaml:"run_factor"`
	WalkFactor        float64 `yaml:"walk_factor"`
	Acceleration      float64 `yaml:"acceleration"`
	RunInputThreshold float64 `yaml:"run_input_threshold"`
	RunAnimSpeed      float64 `yaml:"run_anim_speed"`
}

type IdleTuning struct {
	MinWait float64 `yaml:"min_wait"`
	MaxWait float64 `yaml:"max_wait"`
}

type TeeterTuning struct {
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
}

type JumpTuning struct {
	MinHeight     float64 `yaml:"min_height"`
	MaxHeight     float64 `yaml:"max_height"`
	Time          float64 `yaml:"time"`
	SideFactor    float64 `yaml:"side_factor"`
	SwimFriction  float64 `yaml:"swim_friction"`
	BounceFactor  float64 `yaml:"bounce_factor"`
	CarryAdvance  float64 `yaml:"carry_advance"`
	CarryAnimRate float64 `yaml:"carry_anim_rate"`
	MaxRiseSpeed  float64 `yaml:"max_rise_speed"`
}

type GravityTuning struct {
	DoubleJumpTime float64 `yaml:"double_jump_time"`
	AirControl     float64 `yaml:"air_control"`
	LandAnimSpeed  float64 `yaml:"land_anim_speed"`
}

type ClimbTuning struct {
	VineSpeed       float64 `yaml:"vine_speed"`
	LadderSpeed     float64 `yaml:"ladder_speed"`
	OffsetY         float64 `yaml:"offset_y"`
	TransitionBack  float64 `yaml:"transition_back"`
	TransitionSide  float64 `yaml:"transition_side"`
	ClimbOverOffset float64 `yaml:"climb_over_offset"`
}

type LedgeTuning struct {
	VelocityThreshold   float64 `yaml:"velocity_threshold"`
	MovementThreshold   float64 `yaml:"movement_threshold"`
	DistanceThreshold   float64 `yaml:"distance_threshold"`
	LeaveFloorThreshold float64 `yaml:"leave_floor_threshold"`
	ShimmyFactor        float64 `yaml:"shimmy_factor"`
	DropNudge           float64 `yaml:"drop_nudge"`
}

type LookTuning struct {
	Offset    float64 `yaml:"offset"`
	AnimSpeed float64 `yaml:"anim_speed"`
}

type TrileTuning struct {
	ThrowStrength float64 `yaml:"throw_strength"`
	PushFactor    float64 `yaml:"push_factor"`
	// ReleaseAt is the throw animation fraction at which the carried body
	// leaves the player's hands.
	ReleaseAt   float64 `yaml:"release_at"`
	CarryHeight float64 `yaml:"carry_height"`
}

type SwimTuning struct {
	PulseDelay   float64 `yaml:"pulse_delay"`
	SwimFactor   float64 `yaml:"swim_factor"`
	UpFactor     float64 `yaml:"up_factor"`
	DiffFactor   float64 `yaml:"diff_factor"`
	StableFactor float64 `yaml:"stable_factor"`
	MaxVelocity  float64 `yaml:"max_velocity"`
}

type DoorTuning struct {
	SpinThroughFactor float64 `yaml:"spin_through_factor"`
	DefaultFactor     float64 `yaml:"default_factor"`
	OpeningDuration   float64 `yaml:"opening_duration"`
	SwingStart        float64 `yaml:"swing_start"`
	FadeTime          float64 `yaml:"fade_time"`
}

type TreasureTuning struct {
	TweenTime    float64 `yaml:"tween_time"`
	FindDuration float64 `yaml:"find_duration"`
	ChestAnim    float64 `yaml:"chest_anim_speed"`
}

type FirstPersonTuning struct {
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
	JoySensitivity   float64 `yaml:"joy_sensitivity"`
	FOV              float64 `yaml:"fov"`
	Acceleration     float64 `yaml:"acceleration"`
	Deceleration     float64 `yaml:"deceleration"`
	RotationLimit    float64 `yaml:"rotation_limit"`
}

type DiePanicTuning struct {
	FreeFallStart float64 `yaml:"free_fall_start"`
	FreeFallEnd   float64 `yaml:"free_fall_end"`
	CamPanUp      float64 `yaml:"cam_pan_up"`
	CamFollowEnd  float64 `yaml:"cam_follow_end"`
	// AirPanicCaps is the world height per level that a fall ends at
	// before FreeFallEnd is reached.
	AirPanicCaps map[string]float64 `yaml:"air_panic_caps"`
}

type CrushTuning struct {
	Duration   float64 `yaml:"duration"`
	HorzFactor float64 `yaml:"horz_factor"`
	VertFactor float64 `yaml:"vert_factor"`
	AnimSpeed  float64 `yaml:"anim_speed"`
}

type HurtTuning struct {
	DoneForTime float64 `yaml:"done_for_time"`
	RecoverTime float64 `yaml:"recover_time"`
}

type CameraTuning struct {
	DragHorizontal  float64 `yaml:"drag_horizontal"`
	DragVertical    float64 `yaml:"drag_vertical"`
	DragDamp        float64 `yaml:"drag_damp"`
	RotateTime      float64 `yaml:"rotate_time"`
	OffsetSpeed     float64 `yaml:"offset_speed"`
	PixelsPerTrixel float64 `yaml:"pixels_per_trixel"`
	ViewportHeight  float64 `yaml:"viewport_height"`
}

type PickupTuning struct {
	Gravity     float64 `yaml:"gravity"`
	KillPlane   float64 `yaml:"kill_plane"`
	DrownTime   float64 `yaml:"drown_time"`
	FloatHeight float64 `yaml:"float_height"`
}

type LiquidTuning struct {
	Speed float64 `yaml:"speed"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Move: MoveTuning{
			DefaultSpeed:      4.7,
			LightFactor:       0.86,
			HeavyFactor:       0.5,
			RunFactor:         1,
			WalkFactor:        0.8,
			Acceleration:      20,
			RunInputThreshold: 0.7,
			RunAnimSpeed:      1.25,
		},
		Idle:   IdleTuning{MinWait: 8, MaxWait: 10},
		Teeter: TeeterTuning{MinDistance: 0.45, MaxDistance: 1},
		Jump: JumpTuning{
			MinHeight:     1,
			MaxHeight:     2.5,
			Time:          0.6,
			SideFactor:    0.25,
			SwimFriction:  0.775,
			BounceFactor:  1.32,
			CarryAdvance:  0.35,
			CarryAnimRate: 0.5,
			MaxRiseSpeed:  0.1,
		},
		Gravity: GravityTuning{DoubleJumpTime: 0.1, AirControl: 4, LandAnimSpeed: 1.75},
		Climb: ClimbTuning{
			VineSpeed:       0.475,
			LadderSpeed:     0.425,
			OffsetY:         0.15,
			TransitionBack:  0.16,
			TransitionSide:  0.32,
			ClimbOverOffset: 0.5,
		},
		Ledge: LedgeTuning{
			VelocityThreshold:   0.025,
			MovementThreshold:   0.1,
			DistanceThreshold:   0.35,
			LeaveFloorThreshold: 1.25,
			ShimmyFactor:        0.15,
			DropNudge:           0.5,
		},
		Look:  LookTuning{Offset: 0.4, AnimSpeed: 1.25},
		Trile: TrileTuning{ThrowStrength: 3, PushFactor: 0.5, ReleaseAt: 0.5, CarryHeight: 1},
		Swim: SwimTuning{
			PulseDelay:   0.5,
			SwimFactor:   1,
			UpFactor:     0.4725,
			DiffFactor:   0.025,
			StableFactor: 0.006,
			MaxVelocity:  0.2,
		},
		Door: DoorTuning{
			SpinThroughFactor: 0.75,
			DefaultFactor:     1.25,
			OpeningDuration:   1.25,
			SwingStart:        0.7,
			FadeTime:          0.5,
		},
		Treasure: TreasureTuning{TweenTime: 0.25, FindDuration: 4, ChestAnim: 0.9},
		FirstPerson: FirstPersonTuning{
			MouseSensitivity: 0.05,
			JoySensitivity:   2,
			FOV:              90,
			Acceleration:     4.5,
			Deceleration:     16,
			RotationLimit:    70,
		},
		DiePanic: DiePanicTuning{
			FreeFallStart: 10,
			FreeFallEnd:   36,
			CamPanUp:      5,
			CamFollowEnd:  27,
			AirPanicCaps:  map[string]float64{},
		},
		Crush: CrushTuning{Duration: 1.75, HorzFactor: 1.2, VertFactor: 1, AnimSpeed: 2},
		Hurt:  HurtTuning{DoneForTime: 1.25, RecoverTime: 2},
		Camera: CameraTuning{
			DragHorizontal:  2,
			DragVertical:    0,
			DragDamp:        0.2,
			RotateTime:      0.45,
			OffsetSpeed:     0.1,
			PixelsPerTrixel: 3,
			ViewportHeight:  720,
		},
		Pickup: PickupTuning{Gravity: -9.8, KillPlane: -100, DrownTime: 10, FloatHeight: 0.5},
		Liquid: LiquidTuning{Speed: 1.2},
	}
}

// CarrySpeed is the ground speed while carrying a body of the given weight.
func (t MoveTuning) CarrySpeed(heavy bool) float64 {
	factor := t.LightFactor
	if heavy {
		factor = t.HeavyFactor
	}
	return t.DefaultSpeed * t.WalkFactor * factor
}
