// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"bytes"
	"fmt"

	"github.com/spf13/viper"
)

const (
	defaultMempoolSize = 1024

	mempoolSizeKey = "mempool-size"
)

// Config holds the settings the node hands this VM at chain creation time.
type Config struct {
	// MempoolSize bounds how many datums may be queued for inclusion in
	// blocks. Proposals past the bound are rejected.
	MempoolSize int `json:"mempool-size"`
}

// parseConfig interprets [configBytes] as a JSON document. Absent bytes or
// absent keys fall back to defaults; malformed input is an error.
func parseConfig(configBytes []byte) (Config, error) {
	config := Config{
		MempoolSize: defaultMempoolSize,
	}
	if len(configBytes) == 0 {
		return config, nil
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault(mempoolSizeKey, defaultMempoolSize)
	if err := v.ReadConfig(bytes.NewReader(configBytes)); err != nil {
		return config, fmt.Errorf("couldn't parse vm config: %w", err)
	}

	config.MempoolSize = v.GetInt(mempoolSizeKey)
	if config.MempoolSize <= 0 {
		return config, fmt.Errorf("invalid %s: %d", mempoolSizeKey, config.MempoolSize)
	}
	return config, nil
}
