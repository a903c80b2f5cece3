package main

import (
	"os"

	"github.com/sirupsen/logrus"

	_ "github.com/denysvitali/ladeklubben-cli/cmd/autostart"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/charge"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/list"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/livedata"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/logout"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/member"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/notify"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/owned"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/price"
	"github.com/denysvitali/ladeklubben-cli/cmd/root"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/schedules"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/start"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/stop"
	_ "github.com/denysvitali/ladeklubben-cli/cmd/version"
)

func main() {
	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
