// Package config loads the cds configuration.
//
// A CUE file is unified with the embedded schema (schema.cue), validated
// and decoded into Config. Environment variables, optionally read from a
// .env file, override selected fields afterwards:
//
//	CDS_LOG_LEVEL   log_level
//	CDS_JOURNAL     journal
//	CDS_REDIS_ADDR  redis.addr
//	CDS_LISTEN      listen
package config
