package system

import (
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/component"
	"github.com/milk9111/perspective/mathz"
	"golang.org/x/image/colornames"
)

// viewProjection maps world points onto the screen through the camera's
// current orthogonal view.
type viewProjection struct {
	basis  mgl64.Mat3
	origin mgl64.Vec3
	offset mgl64.Vec3
	ppu    float64
	width  float64
	height float64
}

func newViewProjection(camera *CameraController, screen *ebiten.Image) viewProjection {
	b := screen.Bounds()
	p := viewProjection{
		basis:  camera.Basis(),
		origin: camera.Origin(),
		offset: camera.Offset(),
		width:  float64(b.Dx()),
		height: float64(b.Dy()),
	}
	p.ppu = camera.PixelsPerUnit()
	if size := camera.Size(); size > 0 {
		p.ppu = p.height / size
	}
	return p
}

// local returns v in view space: x right, y up, z toward the camera.
func (p viewProjection) local(v mgl64.Vec3) mgl64.Vec3 {
	return mathz.ToLocal(p.basis, v.Sub(p.origin)).Sub(p.offset)
}

func (p viewProjection) toScreen(local mgl64.Vec3) (float64, float64) {
	return p.width/2 + local.X()*p.ppu, p.height/2 - local.Y()*p.ppu
}

// rect returns the screen rectangle of a box and its view depth.
func (p viewProjection) rect(t *component.Transform, extents mgl64.Vec3) (x, y, w, h, depth float64) {
	local := p.local(t.Origin)
	ext := component.ViewExtents(component.WorldExtents(extents, t.Basis), p.basis)
	x, y = p.toScreen(local.Sub(mgl64.Vec3{ext.X(), -ext.Y(), 0}))
	return x, y, 2 * ext.X() * p.ppu, 2 * ext.Y() * p.ppu, local.Z()
}

// layerColor picks the fill of a collider by its most telling layer.
func layerColor(layer component.PhysicsLayer) color.RGBA {
	switch {
	case layer.Has(component.LayerPlayer):
		return colornames.Crimson
	case layer.Has(component.LayerDeadly):
		return colornames.Orangered
	case layer.Has(component.LayerBounce):
		return colornames.Gold
	case layer.Has(component.LayerLadder):
		return colornames.Sienna
	case layer.Has(component.LayerVine):
		return colornames.Forestgreen
	case layer.Has(component.LayerActors):
		return colornames.Mediumpurple
	case layer.Has(component.LayerTopOnly):
		return colornames.Lightsteelblue
	case layer.Has(component.LayerBackground):
		return colornames.Dimgray
	default:
		return colornames.Slategray
	}
}

// shade darkens c with depth so nearer boxes read brighter.
func shade(c color.RGBA, depth float64) color.RGBA {
	f := mathz.Clamp01(0.55 + depth*0.03)
	return color.RGBA{R: uint8(float64(c.R) * f), G: uint8(float64(c.G) * f), B: uint8(float64(c.B) * f), A: c.A}
}

// RenderSystem draws the world as flat boxes seen through the camera's
// orthogonal view, farthest first.
type RenderSystem struct {
	camera *CameraController
	player *PlayerHandle
}

func NewRenderSystem(camera *CameraController, player *PlayerHandle) *RenderSystem {
	return &RenderSystem{camera: camera, player: player}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil || r.camera == nil {
		return
	}
	screen.Fill(colornames.Midnightblue)
	proj := newViewProjection(r.camera, screen)
	visible := cp.BB{L: 0, B: 0, R: proj.width, T: proj.height}

	type box struct {
		x, y, w, h, depth float64
		fill              color.RGBA
	}
	var boxes []box
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider) {
		if c.Hidden || c.Area && !ecs.Has(w, e, component.CollectableComponent.Kind()) {
			return
		}
		if r.player != nil && e == r.player.Entity() {
			return
		}
		x, y, bw, bh, depth := proj.rect(t, c.Extents)
		if !visible.Intersects(cp.BB{L: x, B: y, R: x + bw, T: y + bh}) {
			return
		}
		fill := layerColor(c.Layer)
		if col, ok := ecs.Get(w, e, component.CollectableComponent.Kind()); ok {
			if !col.Monitorable && col.Kind != component.CollectableTreasureChest {
				return
			}
			fill = colornames.Yellow
		}
		if ecs.Has(w, e, component.DoorComponent.Kind()) {
			fill = colornames.Saddlebrown
		}
		boxes = append(boxes, box{x: x, y: y, w: bw, h: bh, depth: depth, fill: shade(fill, depth)})
	})
	sort.SliceStable(boxes, func(i, j int) bool { return boxes[i].depth < boxes[j].depth })
	for _, b := range boxes {
		vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), b.fill, false)
		vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 1, colornames.Black, false)
	}

	r.drawNpcs(w, screen, proj)
	r.drawPlayer(screen, proj)
	r.drawLiquid(w, screen, proj)
}

// drawNpcs draws each character with its line above it while it talks.
func (r *RenderSystem) drawNpcs(w *ecs.World, screen *ebiten.Image, proj viewProjection) {
	ecs.ForEach3(w, component.NpcComponent.Kind(), component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(_ ecs.Entity, npc *component.Npc, t *component.Transform, c *component.Collider) {
		x, y, bw, bh, depth := proj.rect(t, c.Extents)
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(bw), float32(bh), shade(colornames.Teal, depth), false)
		notchX := x + bw - 3
		if npc.Facing == component.DirLeft {
			notchX = x
		}
		vector.DrawFilledRect(screen, float32(notchX), float32(y+bh*0.2), 3, float32(bh*0.2), colornames.White, false)
		if npc.Speaking && npc.Line != "" {
			ebitenutil.DebugPrintAt(screen, npc.Line, int(x), int(y)-16)
		}
	})
}

func (r *RenderSystem) drawPlayer(screen *ebiten.Image, proj viewProjection) {
	p := r.player
	if p == nil || !p.Visible() {
		return
	}
	x, y, bw, bh, _ := proj.rect(p.Transform(), p.Collider().Extents)
	crimson := colornames.Crimson
	c := color.NRGBA{R: crimson.R, G: crimson.G, B: crimson.B, A: uint8(mathz.Clamp01(p.State().Opacity) * 255)}
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(bw), float32(bh), c, false)

	// A notch on the facing side.
	notchX := x + bw - 3
	if p.Facing() == component.DirLeft {
		notchX = x
	}
	vector.DrawFilledRect(screen, float32(notchX), float32(y+bh*0.2), 3, float32(bh*0.2), colornames.White, false)
}

func (r *RenderSystem) drawLiquid(w *ecs.World, screen *ebiten.Image, proj viewProjection) {
	e, ok := ecs.First(w, component.LiquidComponent.Kind())
	if !ok {
		return
	}
	liquid, _ := ecs.Get(w, e, component.LiquidComponent.Kind())
	_, top := proj.toScreen(proj.local(mgl64.Vec3{proj.origin.X(), liquid.Height, proj.origin.Z()}))
	if top >= proj.height {
		return
	}
	top = max(top, 0)
	c := liquidColor(liquid.Type)
	vector.DrawFilledRect(screen, 0, float32(top), float32(proj.width), float32(proj.height-top), c, false)
}

func liquidColor(t component.LiquidType) color.NRGBA {
	var c color.RGBA
	switch t {
	case component.LiquidLava:
		c = colornames.Orangered
	case component.LiquidBlood:
		c = colornames.Darkred
	case component.LiquidSewer:
		c = colornames.Olive
	case component.LiquidPurple:
		c = colornames.Purple
	case component.LiquidGreen:
		c = colornames.Seagreen
	default:
		c = colornames.Steelblue
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 160}
}
