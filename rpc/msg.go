package rpc

// Msg binds one message type M into a service's request/response sum
// types. Req and Res are the service's sealed request and response enums
// (Go interfaces with an unexported marker method); M is a type tag that
// names the message and appears in no field; Update and Response are the
// payload types a caller sends and receives (for Rpc and ServerStreaming
// messages the request value itself has the Update type).
//
// Go has no associated types, so where the original design attaches
// Update/Response/Pattern to the message type itself, Msg carries the
// conversions explicitly as function fields. This keeps every conversion
// total and panic-free: injections (Update -> Req, Response -> Res) never
// fail, projections (Req -> Update, Res -> Response) report failure via
// the bool rather than panicking on a mismatched variant.
type Msg[Req, Res, M, Update, Response any] struct {
	// Pattern is the interaction shape this message uses.
	Pattern Pattern

	// ToReq injects an update value into the request enum. For Rpc and
	// ServerStreaming messages the call's sole request plays this role;
	// for ClientStreaming and BidiStreaming it is invoked once per update.
	ToReq func(Update) Req
	// FromReq projects a request enum value back down to this message's
	// update type. ok is false when req holds some other message's
	// variant.
	FromReq func(req Req) (u Update, ok bool)

	// ToRes injects a response value into the response enum.
	ToRes func(Response) Res
	// FromRes projects a response enum value back down to this message's
	// response type.
	FromRes func(res Res) (r Response, ok bool)
}

// RpcMsg builds a Msg for a unary message: M's sole request doubles as its
// Update type and M's sole response doubles as its Response type.
func RpcMsg[Req, Res, M, Update, Response any](
	toReq func(Update) Req,
	fromReq func(Req) (Update, bool),
	toRes func(Response) Res,
	fromRes func(Res) (Response, bool),
) Msg[Req, Res, M, Update, Response] {
	return Msg[Req, Res, M, Update, Response]{
		Pattern: PatternRpc,
		ToReq:   toReq,
		FromReq: fromReq,
		ToRes:   toRes,
		FromRes: fromRes,
	}
}

// ClientStreamingMsg builds a Msg for a message where the client streams
// zero or more updates before the server sends its single response.
func ClientStreamingMsg[Req, Res, M, Update, Response any](
	toReq func(Update) Req,
	fromReq func(Req) (Update, bool),
	toRes func(Response) Res,
	fromRes func(Res) (Response, bool),
) Msg[Req, Res, M, Update, Response] {
	return Msg[Req, Res, M, Update, Response]{
		Pattern: PatternClientStreaming,
		ToReq:   toReq,
		FromReq: fromReq,
		ToRes:   toRes,
		FromRes: fromRes,
	}
}

// ServerStreamingMsg builds a Msg for a message where a single client
// request is answered with zero or more server responses.
func ServerStreamingMsg[Req, Res, M, Update, Response any](
	toReq func(Update) Req,
	fromReq func(Req) (Update, bool),
	toRes func(Response) Res,
	fromRes func(Res) (Response, bool),
) Msg[Req, Res, M, Update, Response] {
	return Msg[Req, Res, M, Update, Response]{
		Pattern: PatternServerStreaming,
		ToReq:   toReq,
		FromReq: fromReq,
		ToRes:   toRes,
		FromRes: fromRes,
	}
}

// BidiStreamingMsg builds a Msg for a message where both sides stream
// independently.
func BidiStreamingMsg[Req, Res, M, Update, Response any](
	toReq func(Update) Req,
	fromReq func(Req) (Update, bool),
	toRes func(Response) Res,
	fromRes func(Res) (Response, bool),
) Msg[Req, Res, M, Update, Response] {
	return Msg[Req, Res, M, Update, Response]{
		Pattern: PatternBidiStreaming,
		ToReq:   toReq,
		FromReq: fromReq,
		ToRes:   toRes,
		FromRes: fromRes,
	}
}
