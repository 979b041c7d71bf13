package main

import "collegium_backend/internal/app"

func main() {
	app.Run()
}
