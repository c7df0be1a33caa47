// Package rpc provides a thin, strongly-typed layer that maps four RPC
// interaction patterns - unary, client-streaming, server-streaming, and
// bidirectional streaming - onto an abstract bidirectional channel.
//
// The package never touches a socket. It is parameterized over a Channel,
// supplied by a transport (see the memchannel package for the one shipped
// here), and over a service's own request/response sum types. Callers pair a
// Channel with a Msg binding (see Msg and RpcMsg) to get a typed
// ClientChannel and/or ServerChannel.
package rpc
