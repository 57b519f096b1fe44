package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/freshcrate/attendance/internal/app/api/server"
	"github.com/freshcrate/attendance/internal/app/service/attendance"
	"github.com/freshcrate/attendance/internal/app/service/extension"
	"github.com/freshcrate/attendance/internal/app/service/snapshot"
	"github.com/freshcrate/attendance/internal/platform/db"
	"github.com/freshcrate/attendance/internal/store"
	"github.com/freshcrate/attendance/pkg/config"
	"github.com/freshcrate/attendance/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	store.Module,
	server.Module,
	attendance.Module,
	extension.Module,
	snapshot.Module,
)
