package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ZebulonRouseFrantzich/pwin/internal/binary"
	"github.com/ZebulonRouseFrantzich/pwin/internal/catalog"
	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
	"github.com/ZebulonRouseFrantzich/pwin/internal/lock"
	"github.com/ZebulonRouseFrantzich/pwin/internal/logging"
	"github.com/ZebulonRouseFrantzich/pwin/internal/platform"
	"github.com/ZebulonRouseFrantzich/pwin/internal/service"
	"github.com/ZebulonRouseFrantzich/pwin/internal/transaction"
	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

// homeEnvVar overrides the directory holding .pwin.lock and .pwin.lua.
const homeEnvVar = "PWIN_HOME"

// app holds what every command needs to build its collaborators.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	verbose bool

	// baseURL overrides catalog.DefaultBaseURL when set.
	baseURL  string
	arch     platform.Arch
	detector platform.Detector
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		arch:     platform.ArchFromGOARCH(runtime.GOARCH),
		detector: platform.NewDetector(),
	}
}

// getHomeDir returns the pwin home directory.
func getHomeDir() (string, error) {
	if dir := os.Getenv(homeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

func (a *app) logger() logging.Logger {
	return logging.New(a.stderr, logging.Options{Verbose: a.verbose, Console: true})
}

func (a *app) configStore(home string) *config.Store {
	return config.NewStore(filepath.Join(home, config.FileName), config.NewParser(a.detector))
}

// newManager wires a service.Manager against the real filesystem and network.
func (a *app) newManager() (*service.Manager, error) {
	home, err := getHomeDir()
	if err != nil {
		return nil, err
	}

	log := a.logger()
	downloader := binary.NewDownloader(log)
	client := catalog.NewClient(downloader, log)
	if a.baseURL != "" {
		client.BaseURL = a.baseURL
	}

	return service.NewManager(service.Deps{
		Storage:   lock.NewFileStorage(home),
		Config:    a.configStore(home),
		Catalog:   client,
		Fetcher:   downloader,
		Extractor: binary.NewExtractor(),
		Arch:      a.arch,
		Locker:    transaction.DirLocker{Dir: home},
		Logger:    log,
	})
}

// parseVersionArg parses a user supplied version before any work starts.
func parseVersionArg(arg string) (version.Version, error) {
	v, err := version.Parse(arg)
	if err != nil {
		return version.Version{}, fmt.Errorf("`version` argument could not be parsed: %w", err)
	}
	return v, nil
}
