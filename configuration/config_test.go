package configuration

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestOverrideConfigWithEnvVars(t *testing.T) {
	is := is.New(t)

	instance := "https://dev00000.service-now.com"
	username := "sn-admin"
	password := "sn-password"
	policyDir := "PolicyEnv"
	limit := 250
	topN := 5
	maxParallel := 8
	timeout := 60

	is.NoErr(os.Setenv("SERVICENOW_INSTANCE_URL", instance+"/"))
	is.NoErr(os.Setenv("SERVICENOW_USERNAME", username))
	is.NoErr(os.Setenv("SERVICENOW_PASSWORD", password))
	is.NoErr(os.Setenv("SERVICENOW_POLICY_DIR", policyDir))
	is.NoErr(os.Setenv("SERVICENOW_ARTICLE_LIMIT", strconv.Itoa(limit)))
	is.NoErr(os.Setenv("SERVICENOW_TOP_N", strconv.Itoa(topN)))
	is.NoErr(os.Setenv("SERVICENOW_MAX_PARALLEL", strconv.Itoa(maxParallel)))
	is.NoErr(os.Setenv("SERVICENOW_REQUEST_TIMEOUT", strconv.Itoa(timeout)))
	is.NoErr(os.Setenv("SERVICENOW_SSL_INSECURE_SKIP_VERIFY", "true"))

	defer func() {
		for _, v := range []string{
			"SERVICENOW_INSTANCE_URL", "SERVICENOW_USERNAME", "SERVICENOW_PASSWORD",
			"SERVICENOW_POLICY_DIR", "SERVICENOW_ARTICLE_LIMIT", "SERVICENOW_TOP_N",
			"SERVICENOW_MAX_PARALLEL", "SERVICENOW_REQUEST_TIMEOUT",
			"SERVICENOW_SSL_INSECURE_SKIP_VERIFY",
		} {
			os.Unsetenv(v)
		}
	}()

	var conf Configuration
	LoadConfig("testdata/snc_test.conf", &conf)

	// Env must win over the file, and the trailing slash must be gone.
	is.Equal(instance, conf.InstanceURL)
	is.Equal(username, conf.Username)
	is.Equal(password, conf.Password)
	is.Equal(policyDir, conf.PolicyDir)
	is.Equal(limit, conf.ArticleLimit)
	is.Equal(topN, conf.TopN)
	is.Equal(maxParallel, conf.MaxParallel)
	is.Equal(timeout, conf.RequestTimeout)
	is.Equal(true, conf.SSLInsecureSkipVerify)
	is.Equal(DefaultKBCategory, conf.KBCategory)

	is.NoErr(conf.Validate())
}

func TestLoadConfigFromFileOnly(t *testing.T) {
	is := is.New(t)

	var conf Configuration
	LoadConfig("testdata/snc_test.conf", &conf)

	is.Equal("https://filevalue.service-now.com", conf.InstanceURL)
	is.Equal("file-user", conf.Username)
	is.Equal("FilePolicy", conf.PolicyDir)
	is.Equal(100, conf.ArticleLimit)
	is.Equal(10, conf.TopN)
	is.Equal(4, conf.MaxParallel)
	is.Equal(30, conf.RequestTimeout)
}

func TestValidateReportsEveryMissingVar(t *testing.T) {
	is := is.New(t)

	var conf Configuration
	conf.applyDefaults()

	err := conf.Validate()
	is.True(err != nil)

	msg := err.Error()
	for _, want := range []string{
		"SERVICENOW_INSTANCE_URL",
		"SERVICENOW_USERNAME",
		"SERVICENOW_PASSWORD",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in error, got %q", want, msg)
		}
	}
}

func TestValidateOAuthReplacesBasicCredentials(t *testing.T) {
	is := is.New(t)

	conf := Configuration{
		InstanceURL: "https://dev00000.service-now.com",
		OAuth: OAuthSettings{
			TokenURL:     "https://dev00000.service-now.com/oauth_token.do",
			ClientID:     "client",
			ClientSecret: "secret",
		},
	}
	conf.applyDefaults()

	is.NoErr(conf.Validate())
}
