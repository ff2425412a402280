package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/milk9111/perspective/ecs"
	"github.com/milk9111/perspective/ecs/entity"
	"github.com/milk9111/perspective/levels"
	"github.com/milk9111/perspective/prefabs"
	"github.com/rs/zerolog"
)

func main() {
	only := flag.String("level", "", "check a single level instead of every embedded one")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	names := levels.Names()
	if *only != "" {
		names = []string{*only}
	}

	failed := 0
	for _, name := range names {
		problems := checkLevel(name)
		if len(problems) == 0 {
			log.Info().Str("level", name).Msg("ok")
			continue
		}
		failed++
		for _, p := range problems {
			log.Error().Str("level", name).Msg(p)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// checkLevel loads a level into a scratch world and reports dangling
// references: change targets, landmark volumes, scripts, mover targets and
// npc clips.
func checkLevel(name string) []string {
	lvl, err := levels.LoadLevelFromFS(name)
	if err != nil {
		return []string{err.Error()}
	}

	var problems []string
	w := ecs.NewWorld()
	if err := entity.LoadLevelToWorld(w, lvl); err != nil {
		problems = append(problems, fmt.Sprintf("build: %v", err))
	}

	known := levels.Names()
	for _, a := range lvl.Areas {
		if a.Kind != levels.AreaChangeLevel || a.Next == "" {
			continue
		}
		if !slices.Contains(known, a.Next) {
			problems = append(problems, fmt.Sprintf("area %q leads to unknown level %q", a.Name, a.Next))
			continue
		}
		next, err := levels.LoadLevelFromFS(a.Next)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if !hasVolume(next, a.Volume) {
			problems = append(problems, fmt.Sprintf("area %q lands on missing volume %d in %q", a.Name, a.Volume, a.Next))
		}
	}

	for _, t := range lvl.Triggers {
		if _, err := prefabs.LoadScript(t.Script); err != nil {
			problems = append(problems, fmt.Sprintf("trigger %q: %v", t.Name, err))
		}
	}

	named := map[string]bool{}
	for _, t := range lvl.Triles {
		named[t.Name] = t.Name != ""
	}
	for _, m := range lvl.Movers {
		if !named[m.Target] {
			problems = append(problems, fmt.Sprintf("mover target %q is not a named trile", m.Target))
		}
	}

	clips, err := prefabs.LoadClips()
	if err != nil {
		return append(problems, err.Error())
	}
	for _, n := range lvl.Npcs {
		for a := range n.Actions() {
			if _, ok := clips[a.Clip()]; !ok {
				problems = append(problems, fmt.Sprintf("npc %q has no clip %q", n.Name, a.Clip()))
			}
		}
	}
	return problems
}

func hasVolume(lvl *levels.Level, id int) bool {
	for _, v := range lvl.Volumes {
		if v.ID == id {
			return true
		}
	}
	return false
}
