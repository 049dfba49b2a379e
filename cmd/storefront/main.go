package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flamertt/go-storefront-client/internal/config"
	"github.com/flamertt/go-storefront-client/session/filerepo"
	"github.com/flamertt/go-storefront-client/storefront"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("storefront exited")
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	displayAppname(c.GetAppName())

	repo, err := filerepo.New(c.GetDataFolder())
	if err != nil {
		return err
	}

	engine, err := storefront.New(storefront.Config{
		BaseURL:    c.GetBaseURL(),
		PageSize:   c.GetPageSize(),
		Repo:       repo,
		HTTPClient: &http.Client{Timeout: c.GetHTTPTimeout()},
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := engine.Health(ctx); err != nil {
		log.Warn().Err(err).Str("base_url", c.GetBaseURL()).Msg("gateway health probe failed")
	}

	engine.Restore()
	if sess := engine.Sessions().Current(); sess != nil {
		fmt.Printf("Signed in as %s\n", sess.DisplayName())
	}

	return newREPL(engine, os.Stdin, os.Stdout).run(ctx)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
