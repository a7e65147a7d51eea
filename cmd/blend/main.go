// Command blend runs the Blend events and equipment API.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/blend/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
