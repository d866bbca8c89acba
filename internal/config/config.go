package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Currency  string `env:"CURRENCY" envDefault:"NGN"`
	JWTSecret string `env:"JWT_SECRET"`

	Paystack Paystack `envPrefix:"PAYSTACK_"`
	Redis    Redis    `envPrefix:"REDIS_"`
}

type Paystack struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.paystack.co"`
	SecretKey  string `env:"SECRET_KEY"`
}

type Redis struct {
	Addr string `env:"ADDR" envDefault:"localhost:6379"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
