package main

import "github.com/nugh75/calendario-sub000/internal/app"

func main() {
	app.Main()
}
