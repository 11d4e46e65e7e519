package fixtureserver

//go:generate swag init -g internal/fixtureserver/server.go -o internal/fixtureserver/docs

// @title addrmeta fixture API
// @version 0.1
// @description Serves address metadata fixtures over HTTP and WebSocket.
// @contact.name addrmeta maintainers
// @contact.url https://github.com/raysh454/addrmeta
// @BasePath /
