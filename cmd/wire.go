package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	filestore "github.com/bnema/groupchat-cli/internal/adapters/creds/file"
	"github.com/bnema/groupchat-cli/internal/adapters/gateway/httpapi"
	"github.com/bnema/groupchat-cli/internal/application"
	"github.com/bnema/groupchat-cli/internal/config"
	"github.com/bnema/groupchat-cli/internal/ports"
)

type app struct {
	cfg      config.Config
	store    ports.CredentialStore
	gateway  ports.ChatGateway
	session  *application.SessionService
	feed     *application.FeedService
	logger   *zap.Logger
	logLevel zap.AtomicLevel
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := newFileLogger(cfg.LogFile, level)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	store := filestore.NewStore(cfg.CredentialsDir)
	gateway := httpapi.NewClient(cfg.ServerURL, http.DefaultClient)

	session := application.NewSessionService(store, gateway, logger)
	feed := application.NewFeedService(gateway, session.Token, ports.SystemClock{}, logger)
	feed.SetInterval(cfg.PollInterval())

	return &app{
		cfg:      cfg,
		store:    store,
		gateway:  gateway,
		session:  session,
		feed:     feed,
		logger:   logger,
		logLevel: level,
	}, nil
}

// newFileLogger keeps the terminal clean: all structured output goes to the
// log file so it never fights with the TUI for the screen.
func newFileLogger(path string, level zap.AtomicLevel) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}

	return zcfg.Build()
}
