package main

import "github.com/vmihailenco/msgpack/v5"

// EncodeSnapshot encodes a game state as msgpack for binary clients.
// Field names follow the msgpack tags, which match the JSON names.
func EncodeSnapshot(gs *GameState) ([]byte, error) {
	return msgpack.Marshal(gs)
}

// DecodeSnapshot is the inverse of EncodeSnapshot
func DecodeSnapshot(data []byte) (*GameState, error) {
	gs := &GameState{}
	if err := msgpack.Unmarshal(data, gs); err != nil {
		return nil, err
	}
	return gs, nil
}
