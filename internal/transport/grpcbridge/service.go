// Package grpcbridge is a concrete actorsys.Delegate: it lets one
// actorsys.System reach actors living in a peer system over gRPC, without
// either side generating protoc stubs for every message type an actor
// might ever handle. Messages still cross the wire as protobuf (wrapped in
// google.golang.org/protobuf/types/known/structpb envelopes), but the RPC
// surface itself is a single generic RoundTrip method, hand-wired onto a
// grpc.ServiceDesc the same way protoc-gen-go-grpc would generate it.
package grpcbridge

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/latticehost/actorhost/internal/actorsys"
)

// serviceName is the fully qualified gRPC service name this package
// exposes. It never appears in a .proto file; it exists only in this
// constant and in the ServiceDesc below.
const serviceName = "actorhost.bridge.v1.Bridge"

const fullMethodRoundTrip = "/" + serviceName + "/RoundTrip"

// bridgeServer is the server-side contract the hand-built ServiceDesc
// dispatches onto. Server implements it.
type bridgeServer interface {
	RoundTrip(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// roundTripHandler decodes the request, runs it through any configured
// interceptor, and invokes srv.RoundTrip — structurally identical to what
// protoc-gen-go-grpc emits for a unary method, just written by hand since
// there is no .proto source to generate it from.
func roundTripHandler(srv any, ctx context.Context, dec func(any) error,
	interceptor grpc.UnaryServerInterceptor) (any, error) {

	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(bridgeServer).RoundTrip(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethodRoundTrip,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(bridgeServer).RoundTrip(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

// serviceDesc is the gRPC service descriptor registered with a grpc.Server.
// It is the hand-written equivalent of what protoc-gen-go-grpc would emit
// for a service with one RoundTrip(structpb.Struct) returns (structpb.Struct)
// method.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*bridgeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RoundTrip", Handler: roundTripHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "actorhost/grpcbridge.proto",
}

// RouteFunc handles one message type's inbound payload against a locally
// resolvable target and returns the marshaled response. Hosts register one
// RouteFunc per message type they want reachable from foreign peers; this
// is necessary because only the host application knows the concrete (M, R)
// type pair actorsys.Send needs for a given actor.
type RouteFunc func(ctx context.Context, target string, payload []byte) ([]byte, error)

// Server implements bridgeServer and is registered onto a *grpc.Server with
// RegisterServer.
type Server struct {
	mu     sync.RWMutex
	routes map[string]RouteFunc
}

// NewServer returns an empty Server; routes must be added with
// RegisterRoute before peers can reach any actor through it.
func NewServer() *Server {
	return &Server{routes: make(map[string]RouteFunc)}
}

// RegisterRoute installs fn as the handler for msgType, overwriting any
// previous registration for the same type.
func (s *Server) RegisterRoute(msgType string, fn RouteFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[msgType] = fn
}

// RegisterServer registers s onto grpcServer using the hand-built
// ServiceDesc.
func RegisterServer(grpcServer *grpc.Server, s *Server) {
	grpcServer.RegisterService(&serviceDesc, s)
}

// RoundTrip implements bridgeServer: it decodes the envelope, looks up the
// registered route for the message type, and returns the route's marshaled
// response, also wrapped in a structpb envelope.
func (s *Server) RoundTrip(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	target, ok := stringField(req, "target")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing target field")
	}
	msgType, ok := stringField(req, "msg_type")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing msg_type field")
	}
	payloadB64, _ := stringField(req, "payload")

	payload, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid payload encoding: %v", err)
	}

	s.mu.RLock()
	route, ok := s.routes[msgType]
	s.mu.RUnlock()
	if !ok {
		return nil, status.Errorf(codes.Unimplemented, "no route registered for message type %q", msgType)
	}

	respPayload, err := route(ctx, target, payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "route %q failed: %v", msgType, err)
	}

	return structpb.NewStruct(map[string]any{
		"payload": base64.StdEncoding.EncodeToString(respPayload),
	})
}

func stringField(s *structpb.Struct, key string) (string, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", false
	}
	return v.GetStringValue(), true
}

// Client implements actorsys.Delegate over a gRPC connection to exactly one
// peer system.
type Client struct {
	cc       *grpc.ClientConn
	systemID string
}

// NewClient wraps cc as a Delegate able to resolve identifiers naming
// systemID.
func NewClient(cc *grpc.ClientConn, systemID string) *Client {
	return &Client{cc: cc, systemID: systemID}
}

// Ensure Client implements actorsys.Delegate at compile time.
var _ actorsys.Delegate = (*Client)(nil)

// CanResolve reports whether id names the single peer system this Client
// was constructed for.
func (c *Client) CanResolve(id actorsys.Identifier) bool {
	sys, ok := id.System()
	return ok && string(sys) == c.systemID
}

// RoundTrip marshals id, msgType, and payload into a structpb envelope,
// invokes the bridge's RoundTrip method directly via ClientConn.Invoke
// (bypassing the need for a generated client stub), and returns the
// unwrapped response payload.
func (c *Client) RoundTrip(ctx context.Context, id actorsys.Identifier, msgType string, payload []byte) ([]byte, error) {
	req, err := structpb.NewStruct(map[string]any{
		"target":   id.String(),
		"msg_type": msgType,
		"payload":  base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("grpcbridge: building request envelope: %w", err)
	}

	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethodRoundTrip, req, resp); err != nil {
		return nil, fmt.Errorf("grpcbridge: round trip to %s failed: %w", c.systemID, err)
	}

	payloadB64, _ := stringField(resp, "payload")
	respPayload, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, fmt.Errorf("grpcbridge: decoding response payload: %w", err)
	}

	return respPayload, nil
}
