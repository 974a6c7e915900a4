package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// wire form of a [GameState]; cells are sorted so equal states encode to
// equal bytes.
type snapshot struct {
	Cells      []PlacedCell
	Score      int
	Lives      int
	HighScore  int
	NextLifeAt int
	Over       bool
	Params     Params
}

// [GameState] implements [gob.GobEncoder]
func (s *GameState) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Cells:      s.Sorted(),
		Score:      s.score,
		Lives:      s.lives,
		HighScore:  s.highScore,
		NextLifeAt: s.nextLifeAt,
		Over:       s.over,
		Params:     s.params,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// [GameState] implements [gob.GobDecoder]
func (s *GameState) GobDecode(b []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&snap); err != nil {
		return err
	}
	cells := make(map[Point]Cell, len(snap.Cells))
	for _, pc := range snap.Cells {
		cells[pc.Point] = pc.Cell
	}
	*s = GameState{
		cells:      cells,
		score:      snap.Score,
		lives:      snap.Lives,
		highScore:  snap.HighScore,
		nextLifeAt: snap.NextLifeAt,
		over:       snap.Over,
		params:     snap.Params,
	}
	return nil
}

func (s *GameState) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeGameState(buf []byte) (*GameState, error) {
	var game GameState
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&game); err != nil {
		return nil, fmt.Errorf("unable to decode game state: %w", err)
	}
	return &game, nil
}
