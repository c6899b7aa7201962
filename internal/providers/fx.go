package providers

import (
	"github.com/smallbiznis/vyapar/internal/providers/ai"
	"github.com/smallbiznis/vyapar/internal/providers/pdf"
	"github.com/smallbiznis/vyapar/internal/providers/whatsapp"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	pdf.Module,
	whatsapp.Module,
	ai.Module,
)
