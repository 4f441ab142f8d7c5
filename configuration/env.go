package configuration

import (
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

type EnvConfigVals struct {
	ServerPort               string `yaml:"ServerPort"`
	ProviderPostURL          string `yaml:"ProviderPostURL"`
	ProviderMediaUploadURL   string `yaml:"ProviderMediaUploadURL"`
	ProviderTokenURL         string `yaml:"ProviderTokenURL"`
	ProviderAuthorizeURL     string `yaml:"ProviderAuthorizeURL"`
	OauthRedirectURL         string `yaml:"OauthRedirectURL"`
	HTTPTimeoutSec           int64  `yaml:"HTTPTimeoutSec"`
	MediaPollDefaultDelaySec int64  `yaml:"MediaPollDefaultDelaySec"`
}

var configSync sync.Once
var EnvConfigs *EnvConfigVals

func GetEnvConfigs() *EnvConfigVals {
	if EnvConfigs != nil {
		return EnvConfigs
	}
	configSync.Do(func() {
		var configFile []byte
		var err error
		if os.Getenv("env") == "" || os.Getenv("env") != "prod" {
			configFile, err = os.ReadFile("./configuration/env-dev.yml")
		} else {
			configFile, err = os.ReadFile("./configuration/env-prod.yml")
		}

		if err != nil {
			log.Fatalf("failed to load config file: %s", err)
		}

		var vals EnvConfigVals
		err = yaml.Unmarshal(configFile, &vals)
		if err != nil {
			log.Fatalf("failed to unmarshall config file values: %s", err)
		}
		EnvConfigs = &vals
	})
	return EnvConfigs
}
