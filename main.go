package main

import (
	"context"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/app"
)

// shutdownTimeout bounds draining of both servers and background sync tasks.
const shutdownTimeout = 10 * time.Second

// @title           MiniAppPass API
// @version         1.0
// @description     MiniAppPass issues time-based door access codes and evaluates them at the door.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	a := app.New()
	<-a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.Stop(ctx)
}
