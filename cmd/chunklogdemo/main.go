// Command chunklogdemo wires platform/host into a Pipeline and runs a
// handful of concurrent producer goroutines emitting interleaved messages,
// to demonstrate that the transmitter keeps each task's output contiguous
// on the wire regardless of interleaving at the queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kallsen/chunklog"
	"github.com/kallsen/chunklog/platform/host"
)

func main() {
	producers := flag.Int("producers", 4, "number of concurrent producer goroutines")
	messages := flag.Int("messages", 20, "messages per producer")
	sinkPath := flag.String("sink", "", "file to write log output to (default: stdout)")
	flag.Parse()

	sinkFD := int(os.Stdout.Fd())
	if *sinkPath != "" {
		f, err := os.Create(*sinkPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "chunklogdemo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		sinkFD = int(f.Fd())
	}

	cfg := chunklog.DefaultConfig()
	pf := host.New(sinkFD, cfg.QueueLength)

	pl := chunklog.New(cfg, pf)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := pl.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "chunklogdemo: start: %v\n", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	for i := 0; i < *producers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			name := fmt.Sprintf("producer-%d", n)
			taskID := pl.RegisterTask(name)
			defer pl.UnregisterTask()

			for j := 0; j < *messages; j++ {
				pl.I(taskID).
					Value(fmt.Sprintf("iteration %d from %s, value=", j, name)).
					Format(chunklog.FormatX4).
					Value(uint32(n*1000 + j)).
					End()
				time.Sleep(time.Millisecond)
			}
		}(i)
	}

	wg.Wait()
	cancel()
	if err := pl.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "chunklogdemo: close: %v\n", err)
	}

	snap := pl.Metrics().Snapshot()
	fmt.Fprintf(os.Stderr, "\nchunklogdemo: %d messages completed, %d chunks sent, %.1f%% drop rate\n",
		snap.MessagesCompleted, snap.ChunksSent, snap.DropRate)
}
