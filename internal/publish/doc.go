// Package publish mirrors a contest scoreboard into Redis.
//
// Keys, under a configurable prefix (default "cds"):
//
//	{prefix}:order      sorted set, member team id, score = position (0 = leader)
//	{prefix}:standings  hash, team id -> JSON standing
//	{prefix}:updated    publish sequence number
//
// Each publish replaces the order and standings keys inside one MULTI/EXEC
// transaction, so readers never observe a half-written scoreboard.
package publish
