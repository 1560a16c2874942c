package config

import "os"

func IsDebug() bool {
	return os.Getenv("FAQBOT_DEBUG") == "1"
}
