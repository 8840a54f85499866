package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/localmarkets/marketplace/cmd/app"
)

// @title           Local Markets API
// @version         1.0
// @description     Markets, vendors and their products.
// @BasePath        /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token returned by /auth/login
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
