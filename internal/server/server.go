package server

// Server объединяет HTTP-серверы отдельных сущностей: сделок, капитала, хранилища и каталога
type Server struct {
	DealServer
	CapitalServer
	VaultServer
	CatalogServer
}

func NewServer(
	dealServer DealServer,
	capitalServer CapitalServer,
	vaultServer VaultServer,
	catalogServer CatalogServer,
) Server {
	return Server{
		DealServer:    dealServer,
		CapitalServer: capitalServer,
		VaultServer:   vaultServer,
		CatalogServer: catalogServer,
	}
}
