package docs

// @title           Driver Service API
// @version         1.0
// @description     Driver service handles driver accounts and the parking session lifecycle: start a session at a lot, stop it, pay for it and watch the live charge. Includes a WebSocket billing feed.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
