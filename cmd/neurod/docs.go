package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate docs.
//
// @title           neurod API
// @version         1.0
// @description     HTTP API for signal note storage, semantic search, and text generation.
//
// @contact.name   neurod maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
