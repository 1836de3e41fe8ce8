package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// idCounter backs run IDs when crypto/rand is unavailable
var idCounter uint64

// GenerateRunID generates a pricing run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("price-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("price-%s-%s", timestamp, hex.EncodeToString(b))
}
