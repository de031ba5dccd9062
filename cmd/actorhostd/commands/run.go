package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/latticehost/actorhost/internal/actorsys"
	"github.com/latticehost/actorhost/internal/deadletter"
	"github.com/latticehost/actorhost/internal/demo"
	"github.com/latticehost/actorhost/internal/transport/grpcbridge"
)

// defaultShutdownWait bounds how long `run` waits for the system to drain
// on interrupt before main returns regardless.
const defaultShutdownWait = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run an actor system until interrupted",
	RunE:  runRun,
}

// greetRoute adapts the local "greeter" actor into a grpcbridge.RouteFunc:
// the request payload is taken as a raw UTF-8 name, and the response
// payload is the greeting text. It exists to exercise the bridge's wiring
// end to end; a production message type would instead implement
// actorsys.ForeignMessage and go through actorsys.Get.
func greetRoute(sys *actorsys.System) grpcbridge.RouteFunc {
	return func(ctx context.Context, target string, payload []byte) ([]byte, error) {
		handle, ok := actorsys.GetLocalNamed[demo.Greeter](sys, "greeter")
		if !ok {
			return nil, actorsys.ErrActorGone
		}

		resp, err := actorsys.Send[demo.Greeter, demo.GreetRequest, demo.GreetResponse](
			ctx, handle, demo.GreetRequest{Name: string(payload)},
		)
		if err != nil {
			return nil, err
		}

		return []byte(resp.Text), nil
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	rotator, err := setupLogging(expandHome(logDir))
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	if rotator != nil {
		defer rotator.Close()
	}

	store, err := deadletter.Open(expandHome(dbPath))
	if err != nil {
		return fmt.Errorf("opening dead-letter store: %w", err)
	}
	defer store.Close()

	sys := actorsys.New(
		actorsys.SystemId(systemID),
		actorsys.NoopDelegate{},
		actorsys.WithDeadLetterSink(store),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	greeter := &demo.Greeter{}
	if _, err := actorsys.AddNamed(
		ctx, sys, "greeter", greeter,
		actorsys.Handles(demo.HandleGreet),
	); err != nil {
		return fmt.Errorf("adding greeter actor: %w", err)
	}

	var grpcServer *grpc.Server
	if grpcListenAddr != "" {
		lis, err := net.Listen("tcp", grpcListenAddr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", grpcListenAddr, err)
		}

		bridgeServer := grpcbridge.NewServer()
		bridgeServer.RegisterRoute(
			"demo.GreetRequest",
			greetRoute(sys),
		)

		grpcServer = grpc.NewServer()
		grpcbridge.RegisterServer(grpcServer, bridgeServer)

		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				fmt.Fprintf(os.Stderr, "grpc bridge server stopped: %v\n", err)
			}
		}()
	}

	fmt.Printf("actorhostd: system %q running (correlation %s), press ctrl-c to stop\n",
		systemID, uuid.NewString())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownWait)
	defer shutdownCancel()

	return sys.Shutdown(shutdownCtx)
}
