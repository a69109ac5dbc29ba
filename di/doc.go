// Package di is the composition root for one run.
//
// Keys are plain strings, see Keys. Instances are registered as singletons,
// lazily on first resolve, or eagerly at registration. A lazy constructor
// runs at most once; its instance or its error is remembered.
//
//	c := di.NewContainer(di.WithLogger(log))
//	_ = c.RegisterSingleton(di.Keys.StartupContext, startCtx)
//	_ = c.RegisterLazy(di.Keys.Config, func() (*config.HostConfig, error) {
//	    return config.Load(folders)
//	})
//	cfg, err := di.Resolve[*config.HostConfig](c, di.Keys.Config)
//
// Close releases every initialized instance implementing io.Closer, in
// reverse order of initialization, exactly once.
package di
