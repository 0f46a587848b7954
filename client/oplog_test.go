package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOperationLogAppendAndLen(t *testing.T) {
	log := NewOperationLog()
	log.Append(OperationEntry{OpType: "GET", StartedAt: time.Now()})
	log.Append(OperationEntry{OpType: "POST", StartedAt: time.Now()})
	assert.Equal(t, 2, log.Len())
}

func TestOperationLogRecentReturnsMostRecentN(t *testing.T) {
	log := NewOperationLog()
	for i := 0; i < 5; i++ {
		log.Append(OperationEntry{OpType: "GET"})
	}
	recent := log.Recent(2)
	assert.Len(t, recent, 2)
}

func TestOperationLogRecentCapsAtLength(t *testing.T) {
	log := NewOperationLog()
	log.Append(OperationEntry{OpType: "GET"})
	assert.Len(t, log.Recent(10), 1)
}

func TestOperationLogIterReturnsAllEntries(t *testing.T) {
	log := NewOperationLog()
	log.Append(OperationEntry{OpType: "GET"})
	log.Append(OperationEntry{OpType: "PUT"})
	all := log.Iter()
	assert.Len(t, all, 2)
	assert.Equal(t, "GET", all[0].OpType)
	assert.Equal(t, "PUT", all[1].OpType)
}
