// Package demo provides a minimal actor used by cmd/actorhostd to exercise
// a freshly constructed System end to end: registration, a request/response
// handler, and a clean shutdown.
package demo

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/latticehost/actorhost/internal/actorsys"
)

// GreetRequest asks the Greeter actor for a greeting.
type GreetRequest struct {
	actorsys.BaseMessage
	Name string
}

func (GreetRequest) MessageType() string { return "demo.GreetRequest" }

// GreetResponse carries the Greeter's reply along with how many greetings
// it has produced so far, to make the actor's single-threaded state
// visible across concurrent callers.
type GreetResponse struct {
	Text  string
	Count uint64
}

// Greeter is a tiny stateful actor: it counts how many greetings it has
// handed out. It implements Initializer and Deinitializer as no-ops.
type Greeter struct {
	greeted atomic.Uint64
}

var _ actorsys.Initializer = (*Greeter)(nil)
var _ actorsys.Deinitializer = (*Greeter)(nil)

func (g *Greeter) Initialize(ctx context.Context, actx *actorsys.Context) error {
	return nil
}

func (g *Greeter) Deinitialize(ctx context.Context, actx *actorsys.Context) error {
	return nil
}

// HandleGreet is registered with actorsys.Handles when the Greeter is
// added to a System.
func HandleGreet(ctx context.Context, actx *actorsys.Context, g *Greeter, msg GreetRequest) (GreetResponse, error) {
	count := g.greeted.Add(1)
	return GreetResponse{
		Text:  fmt.Sprintf("hello, %s (actor %d)", msg.Name, actx.ID()),
		Count: count,
	}, nil
}
