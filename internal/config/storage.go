package config

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type StorageConfig struct {
	DriverName string `yaml:"driver"`
	FilePath   string `yaml:"path"`
	Hostname   string `yaml:"host"`
	Db         string `yaml:"db"`
	User       string `yaml:"username"`
	Pswd       string `yaml:"password"`
}

func (s *StorageConfig) Driver() string {
	return s.DriverName
}

func (s *StorageConfig) Path() string {
	return s.FilePath
}

func (s *StorageConfig) Host() string {
	return s.Hostname
}

func (s *StorageConfig) Database() string {
	return s.Db
}

func (s *StorageConfig) Username() string {
	return s.User
}

func (s *StorageConfig) Password() string {
	return s.Pswd
}
