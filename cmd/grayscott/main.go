//go:build ebiten

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"

	"grayscott/internal/app"
	"grayscott/internal/core"
	_ "grayscott/internal/sims/grayscott"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	list := flag.Bool("list", false, "print the available sims and exit")
	flag.Parse()

	if *list {
		for _, name := range core.Names() {
			fmt.Println(name)
		}
		return
	}

	if _, ok := cfg.Overrides["seed"]; !ok {
		cfg.Overrides["seed"] = strconv.FormatInt(cfg.Seed, 10)
	}
	sim, err := core.New(cfg.Sim, cfg.Overrides)
	if err != nil {
		log.Fatal(err)
	}

	game, err := app.New(sim, cfg)
	if err != nil {
		log.Fatal(err)
	}
	size := sim.Size()

	ebiten.SetWindowTitle("Gray-Scott: " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+max(cfg.HUDWidth, 0), size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
