package config

// DefaultConfigYAML 内置默认配置
// 外部 config.yaml、环境变量可以逐项覆盖
var DefaultConfigYAML = []byte(`server:
  port: ":8080"
  mode: "debug"

database:
  host: "localhost"
  port: "3306"
  username: "root"
  password: ""
  dbname: "expensetracker_db"
  charset: "utf8mb4"

jwt:
  secret: "expensetracker-dev-secret"
  expire_hours: 24

email:
  enabled: false
  host: "smtp.example.com"
  port: 465
  username: ""
  password: ""
  from: "记账系统"
`)
