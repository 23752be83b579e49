package collection

// Notifier emits a "<collection>:changed" event after a mutation
// commits. ctx is the request that triggered the mutation, so a
// Notifier can reach that request's own session facts (e.g. a
// per-request broadcast function) rather than only ones frozen at
// construction time.
type Notifier interface {
	Notify(ctx Context, collection string)
}

// LocalNotifier broadcasts to every session connected to this process
// via ctx.Session().EmitToAll, if the request's session supplied one;
// otherwise it is a no-op. It is the default Notifier - change
// notification within a single process needs no broker.
type LocalNotifier struct{}

// Notify implements Notifier.
func (LocalNotifier) Notify(ctx Context, collection string) {
	if emit := ctx.Session().EmitToAll; emit != nil {
		emit(collection + ":changed")
	}
}
