// Package config provides loading, environment overlay and live reloading of
// xstream configuration. It exposes a Default() baseline that file and env
// values are layered on.
//
// Example:
//
//	cfg, err := config.Load(config.DefaultConfigPath())
//	if err != nil {
//	    return err
//	}
//	config.FromEnv(&cfg)
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
package config
