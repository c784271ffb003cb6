package main

import "catering/cmd"

// @title Catering Menu API
// @version 1.0
// @description Menus, categories, menu items and tags for caterers, with public share links
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cmd.Execute()
}
