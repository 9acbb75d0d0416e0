package maskable

// Watch implements directory.Lifetime
// release runs when the binding node is removed from the tree or freed
// Deactivate detaches through scene.Node.Detach, which fires no exit hooks, so bindings
// anywhere in the detached subtree stay registered
func (b *Binding) Watch(release func()) (stop func()) {
	stopExit := b.node.OnExiting(release)
	stopFreed := b.node.OnFreed(release)
	return func() {
		stopExit()
		stopFreed()
	}
}

// Alive implements directory.Lifetime
func (b *Binding) Alive() bool {
	return !b.node.IsFreed()
}
