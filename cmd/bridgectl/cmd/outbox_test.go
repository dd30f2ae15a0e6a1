package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Bidon15/nbtcbridge/bridge"
)

func TestOutboxCmdTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range outboxCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["get"])
	assert.True(t, names["sigstatus"])
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "batch", kindName(bridge.MessageBatch))
	assert.Equal(t, "logic_call", kindName(bridge.MessageLogicCall))
	assert.Equal(t, "update_valset", kindName(bridge.MessageUpdateValset))
	assert.Equal(t, "unknown", kindName(bridge.MessageKind(99)))
}

func TestOutboxGetInvalidIndex(t *testing.T) {
	resetFlags(t)
	assert.Error(t, outboxGetCmd.RunE(outboxGetCmd, []string{"not-a-number"}))
}
