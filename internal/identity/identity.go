// Package identity derives the 3-digit device ID that namespaces MQTT topics
// and labels the portal. The ID is generated once and persisted; it never
// changes for the life of the device.
package identity

import (
	"crypto/rand"
	"fmt"
	"hash/fnv"
	"math/big"
	"os"
	"regexp"
	"strings"
)

const machineIDPath = "/etc/machine-id"

var validID = regexp.MustCompile(`^[0-9]{3}$`)

// Valid reports whether id is a well-formed 3-digit device ID.
func Valid(id string) bool {
	return validID.MatchString(id)
}

// Derive returns a stable 3-digit ID for this host: a hash of the machine ID
// when available, otherwise random. Call once at first boot and persist the
// result.
func Derive() string {
	if data, err := os.ReadFile(machineIDPath); err == nil {
		s := strings.TrimSpace(string(data))
		if s != "" {
			h := fnv.New32a()
			h.Write([]byte(s))
			return fmt.Sprintf("%03d", h.Sum32()%1000)
		}
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		// crypto/rand failing means the host is badly broken; a fixed ID
		// still lets the device function.
		return "000"
	}
	return fmt.Sprintf("%03d", n.Int64())
}
