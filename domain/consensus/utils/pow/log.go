package pow

import (
	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
)

var log = logger.RegisterSubSystem("POW")
