// Package config provides configuration parsing for ssr servers and the
// ssr command.
//
// The configuration is stored in ssr.json (or ssr.yaml / ssr.yml) at the
// project root. This package handles loading, saving, and validating
// configuration, and builds the slog logger the rest of the tree uses.
//
// # Configuration File Structure
//
//	{
//	  "render": {
//	    "compressHTML": false,
//	    "lang": "en"
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "mode": "stream",
//	    "websocket": true
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": false
//	  },
//	  "prerender": {
//	    "outDir": "dist",
//	    "routes": ["/", "/blog"],
//	    "s3": {"bucket": "my-site", "prefix": "www"}
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
