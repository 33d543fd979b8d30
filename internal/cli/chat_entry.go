package arxa

import (
	"context"
)

func runChat() {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := GetConfig()
	startGUI(ctx, cfg, cancel)
}
