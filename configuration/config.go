package configuration

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	logger "github.com/rajeevsingh-dev/ServiceNow-Connector/log"
)

var log = logger.Get()
var mainLoggerTag = "CONFIG"
var mainLogger = log.WithField("prefix", mainLoggerTag)

// EnvPrefix is the prefix shared by every configuration environment variable.
const EnvPrefix = "SERVICENOW"

// DefaultKBCategory is the kb_category sys_id applied to created articles
// when none is configured (the instance's General category).
const DefaultKBCategory = "0aa3ffa7db7c030064dd36cb7c96197f"

// OAuthSettings selects OAuth2 client-credentials auth when all three
// fields are set. Basic Auth is used otherwise.
type OAuthSettings struct {
	TokenURL     string `json:"token_url"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (o OAuthSettings) Enabled() bool {
	return o.TokenURL != "" && o.ClientID != "" && o.ClientSecret != ""
}

// Configuration holds all settings for the connector
type Configuration struct {
	InstanceURL string `envconfig:"INSTANCE_URL"`
	Username    string `envconfig:"USERNAME"`
	Password    string `envconfig:"PASSWORD"`

	PolicyDir    string `envconfig:"POLICY_DIR"`
	KBCategory   string `envconfig:"KB_CATEGORY"`
	ArticleLimit int    `envconfig:"ARTICLE_LIMIT"`
	TopN         int    `envconfig:"TOP_N"`
	MaxParallel  int    `envconfig:"MAX_PARALLEL"`

	RequestTimeout        int  `envconfig:"REQUEST_TIMEOUT"`
	SSLInsecureSkipVerify bool `envconfig:"SSL_INSECURE_SKIP_VERIFY"`

	OAuth OAuthSettings `json:"oauth"`
}

// LoadConfig will load the config from an optional file and then apply
// environment overrides. An empty filePath means env-only configuration.
func LoadConfig(filePath string, conf *Configuration) {
	log = logger.Get()
	mainLogger = &logrus.Entry{Logger: log}
	mainLogger = mainLogger.Logger.WithField("prefix", mainLoggerTag)

	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			mainLogger.Error("Couldn't load configuration file: ", err)
		} else {
			jsErr := json.Unmarshal(raw, conf)
			if jsErr != nil {
				mainLogger.Error("Couldn't unmarshal configuration: ", jsErr)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, conf); err != nil {
		mainLogger.Errorf("Failed to process config env vars: %v", err)
	}

	conf.applyDefaults()

	mainLogger.Debugf("Config Loaded: instance=%s user=%s", conf.InstanceURL, conf.Username)
}

func (c *Configuration) applyDefaults() {
	c.InstanceURL = strings.TrimRight(c.InstanceURL, "/")

	if c.PolicyDir == "" {
		c.PolicyDir = "Policy"
	}
	if c.KBCategory == "" {
		c.KBCategory = DefaultKBCategory
	}
	if c.ArticleLimit == 0 {
		c.ArticleLimit = 100
	}
	if c.TopN == 0 {
		c.TopN = 10
	}
	if c.MaxParallel == 0 {
		c.MaxParallel = 4
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30
	}
}

// Validate reports every missing required setting by the environment
// variable that supplies it, so the operator can fix them all at once.
func (c *Configuration) Validate() error {
	var missing []string
	if c.InstanceURL == "" {
		missing = append(missing, EnvPrefix+"_INSTANCE_URL")
	}
	if !c.OAuth.Enabled() {
		if c.Username == "" {
			missing = append(missing, EnvPrefix+"_USERNAME")
		}
		if c.Password == "" {
			missing = append(missing, EnvPrefix+"_PASSWORD")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("the following environment variables are required but missing: %s",
			strings.Join(missing, ", "))
	}
	return nil
}
