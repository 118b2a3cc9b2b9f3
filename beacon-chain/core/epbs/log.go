package epbs

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "epbs")
