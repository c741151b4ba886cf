package app

import (
	"context"
	"fmt"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
	"github.com/yungbote/ssmlcast/internal/platform/objstore"
)

var newObjectStore = objstore.New

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapErrorConnectFailed       StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code  StorageBootstrapErrorCode
	Mode  objstore.Mode
	Cause error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "transcript storage bootstrap failed"
	}
	return fmt.Sprintf("transcript storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveArchiver builds the transcript archiver for cfg.Mode. ModeNone
// yields an archiver that reports itself disabled.
func resolveArchiver(ctx context.Context, log *logger.Logger, cfg objstore.Config) (*objstore.Archiver, objstore.Store, error) {
	if cfg.Mode == objstore.ModeGCSEmulator && cfg.GCSEmulatorHost == "" {
		err := &StorageBootstrapError{
			Code:  StorageBootstrapErrorMissingEmulatorHost,
			Mode:  cfg.Mode,
			Cause: fmt.Errorf("STORAGE_EMULATOR_HOST is empty"),
		}
		log.Error("Transcript storage selection failed", "mode", cfg.Mode, "error_code", err.Code, "error", err)
		return nil, nil, err
	}

	store, err := newObjectStore(ctx, cfg, log)
	if err != nil {
		wrapped := &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: cfg.Mode, Cause: err}
		log.Error("Transcript storage connection failed", "mode", cfg.Mode, "error_code", wrapped.Code, "error", err)
		return nil, nil, wrapped
	}

	archiver := objstore.NewArchiver(store, log)
	log.Info("Transcript storage ready", "mode", cfg.Mode, "archiving", archiver.Enabled())
	return archiver, store, nil
}
