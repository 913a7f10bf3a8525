package future

// completedFuture is the distinguished already-completed void future the
// spec calls void_future: used by Yield (wait_for(completed_future)) to
// force a round-trip through the scheduler without actually parking on any
// external result.
type completedFuture struct{}

var _ Future = completedFuture{}

func (completedFuture) Subscribe(callback func(result any, err error)) { callback(nil, nil) }
func (completedFuture) Cancel()                                       {}
func (completedFuture) IsSet() bool                                   { return true }

// Completed is the shared void_future instance.
var Completed Future = completedFuture{}
