package app

import (
	"context"
	"net/http"

	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/config"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goroutine"
	"github.com/anastasipancheva/miniapppass/internal/pkg/hash"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/anastasipancheva/miniapppass/internal/pkg/messaging"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
	"github.com/anastasipancheva/miniapppass/internal/pkg/qrcode"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
	"github.com/anastasipancheva/miniapppass/internal/pkg/seal"
	"github.com/anastasipancheva/miniapppass/internal/pkg/storage"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"github.com/casbin/casbin/v3"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      *hash.HMACSHA256
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	totp      otp.OTP
	qrcode    qrcode.Encoder
	sealer    seal.Sealer
	jwt       jwt.JWT

	// resources
	messaging messaging.Messaging
	storage   storage.Storage
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	sseRouter  *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
