package log

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/sirupsen/logrus"
)

func TestGetLevelFromEnv(t *testing.T) {
	is := is.New(t)

	is.NoErr(os.Setenv("SERVICENOW_LOGLEVEL", "debug"))
	defer os.Unsetenv("SERVICENOW_LOGLEVEL")
	is.Equal(logrus.DebugLevel, Get().Level)

	is.NoErr(os.Setenv("SERVICENOW_LOGLEVEL", "warn"))
	is.Equal(logrus.WarnLevel, Get().Level)

	is.NoErr(os.Setenv("SERVICENOW_LOGLEVEL", ""))
	is.Equal(logrus.InfoLevel, Get().Level)
}

func TestSetLogger(t *testing.T) {
	is := is.New(t)

	original := Get()
	defer SetLogger(original)

	replacement := logrus.New()
	SetLogger(replacement)
	is.Equal(replacement, Get())
}

func TestRawFormatter(t *testing.T) {
	is := is.New(t)

	raw := GetRaw()
	_, isRaw := raw.Formatter.(*RawFormatter)
	is.True(isRaw)

	out, err := raw.Formatter.Format(&logrus.Entry{Message: "plain message"})
	is.NoErr(err)
	is.Equal("plain message", string(out))
}
