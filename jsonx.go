package main

import "github.com/bytedance/sonic"

// fastJSONMarshal encodes v as JSON using the Sonic encoder, optimized for
// throughput and lower allocations compared to encoding/json. The query
// service uses this on every response.
func fastJSONMarshal(v interface{}) ([]byte, error) {
	return sonic.Marshal(v)
}
