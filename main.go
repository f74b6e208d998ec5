package main

import (
	"github.com/rs/zerolog/log"

	"github.com/lthummus/qlock/ainit"
	"github.com/lthummus/qlock/internal/cmd"
)

func main() {
	log.Info().Bool("loaded", ainit.Loaded()).Msg("initializing")
	cmd.Execute()
}
