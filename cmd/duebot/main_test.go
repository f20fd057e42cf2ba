package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInfer(t *testing.T) {
	out, err := execute(t, "infer",
		"--config", "",
		"--timezone", "Europe/Moscow",
		"--now", "2024-06-10T10:00:00+03:00",
		"--json=false",
		"созвон 3.09 в 15",
	)
	require.NoError(t, err)
	assert.Equal(t, "Срок: 03.09.2024 15:00\ndueDate: 2024-09-03T15:00:00.000+0300\n", out)

	out, err = execute(t, "infer",
		"--config", "",
		"--timezone", "Europe/Moscow",
		"--now", "2024-06-10T10:00:00+03:00",
		"--json=true",
		"купить", "хлеб",
	)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "купить хлеб", payload["title"])
	assert.Equal(t, "2024-06-10T23:00:00.000+0300", payload["dueDate"])
	assert.Equal(t, "Europe/Moscow", payload["timeZone"])
	assert.Equal(t, false, payload["isAllDay"])
}

func TestInfer_InvalidNow(t *testing.T) {
	_, err := execute(t, "infer", "--config", "", "--timezone", "UTC", "--now", "yesterday", "купить хлеб")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --now")
}

func TestInfer_InvalidTimezone(t *testing.T) {
	_, err := execute(t, "infer", "--config", "", "--timezone", "Mars/Olympus", "--now", "2024-06-10T10:00:00Z", "купить хлеб")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
