package main

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBoard(t *testing.T) {
	frame := []byte(`{"type":"leaderboard","payload":{"entries":[
		{"rank":1,"username":"alice","total_carbon_saved":12.5,"streak":3,"last_activity_date":"2026-10-19"},
		{"rank":2,"username":"bob","total_carbon_saved":0,"streak":0,"last_activity_date":null}
	]}}`)

	var m message
	require.NoError(t, json.Unmarshal(frame, &m))
	require.Len(t, m.Payload.Entries, 2)

	var buf bytes.Buffer
	printBoard(&buf, m.Payload.Entries)

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "12.50 kg")
	assert.Contains(t, out, "last 2026-10-19")
	assert.Contains(t, out, "last -")
}
