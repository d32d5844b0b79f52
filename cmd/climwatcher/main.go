package main

import (
	"sensor-anomaly-alerts/internal/cli"
)

func main() {
	cli.Execute()
}
