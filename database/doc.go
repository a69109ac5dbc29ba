// Package database opens the host's main and log stores with GORM.
//
// Stores are SQLite files in the app data folder unless Postgres options are
// configured, in which case both stores live on the Postgres server. Every
// connection pool opened in the process is tracked so the shutdown sequence
// can release them all with ReleaseAll, including pools whose owner never
// closed them.
//
//	mainCfg, logCfg := database.StoreConfigs(pg, folders.MainDBPath(), folders.LogDBPath())
//	store := database.NewComponent("main-store", mainCfg, log)
//	registry.Register(store)
package database
