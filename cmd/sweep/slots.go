package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/snapshot"
)

// listSlots prints every save slot with its score and the time it was saved.
func listSlots(ctx context.Context, store *snapshot.Store, out io.Writer) error {
	slots, err := store.Keys(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(out, "no saved games")
		return nil
	}
	for _, slot := range slots {
		save, err := store.LoadGame(ctx, slot)
		if err != nil {
			fmt.Fprintf(out, "%s\tunreadable: %v\n", slot, err)
			continue
		}
		status := "playing"
		if save.Game.GameOver() {
			status = "over"
		}
		fmt.Fprintf(out, "%s\tscore %d\tbest %d\t%s\t%s\n",
			slot, save.Game.Score(), save.Game.HighScore(), status,
			save.SavedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func removeSlot(ctx context.Context, log *logrus.Logger, store *snapshot.Store, slot string) error {
	if err := store.Delete(ctx, slot); err != nil {
		return err
	}
	left, err := store.Count(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"slot": slot,
		"left": left,
	}).Info("deleted save slot")
	return nil
}
