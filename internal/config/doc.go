// Package config loads the vcell server configuration.
//
// The file format follows the extension: .yaml/.yml, .toml or .json.
//
// # Configuration File Structure
//
//	name: dashboard
//	listen: ":8080"
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	store:
//	  backend: redis
//	  redis:
//	    addr: localhost:6379
//	    ttl: 24h
//	cells:
//	  - name: counter
//	    initial: 0
//	    persist: true
//	  - name: banner
//	    initial: "hello"
//	    readOnly: true
//
// # Usage
//
//	cfg, err := config.Load("vcell.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Watch keeps a cell holding the configuration current as the file changes.
package config
