package pkg_test

import (
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/tobsdb/tabq/pkg"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

func TestLogFileSurvivesLevelChange(t *testing.T) {
	dir := fs.NewDir(t, "logs")
	defer dir.Remove()
	path := dir.Join("tabq.log")

	SetLogLevel(LogLevelNone)
	SetLogFile(LogFileOptions{Path: path})
	SetLogLevel(ParseLogLevel("warn"))
	t.Cleanup(func() {
		SetLogFile(LogFileOptions{})
		SetLogLevel(LogLevelErrOnly)
	})
	assert.Equal(t, Log.GetLevel(), logrus.WarnLevel)

	InfoLog("hidden info line")
	WarnLog("remote search failed: timeout")

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(data), "remote search failed: timeout"), string(data))
	assert.Assert(t, !strings.Contains(string(data), "hidden info line"), string(data))
}
