package registry

// Persisted registry entities. The production schema is applied by external
// DDL; the gorm tags exist for the sqlite test migrations and to document
// column mapping.

type Empresa struct {
	CnpjBasico       string  `gorm:"column:cnpj_basico;primaryKey;size:8" json:"cnpj_basico"`
	RazaoSocial      *string `gorm:"column:razao_social" json:"razao_social"`
	NaturezaJuridica *string `gorm:"column:natureza_juridica" json:"natureza_juridica"`
	CapitalSocial    *string `gorm:"column:capital_social" json:"capital_social"`
	PorteEmpresa     *string `gorm:"column:porte_empresa" json:"porte_empresa"`
}

func (Empresa) TableName() string { return "empresas" }

type Estabelecimento struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	CnpjCompleto   string  `gorm:"column:cnpj_completo;size:14;uniqueIndex;not null" json:"cnpj_completo"`
	CnpjBasico     string  `gorm:"column:cnpj_basico;size:8;index;not null" json:"cnpj_basico"`
	NomeFantasia   *string `gorm:"column:nome_fantasia" json:"nome_fantasia"`
	Situacao       *string `gorm:"column:situacao" json:"situacao"`
	Uf             *string `gorm:"column:uf;size:2" json:"uf"`
	Municipio      *string `gorm:"column:municipio" json:"municipio"`
	CnaePrincipal  *string `gorm:"column:cnae_principal" json:"cnae_principal"`
	CnaeSecundario *string `gorm:"column:cnae_secundario" json:"cnae_secundario"`
	Pais           *string `gorm:"column:pais" json:"pais"`
	Motivo         *string `gorm:"column:motivo" json:"motivo"`
}

func (Estabelecimento) TableName() string { return "estabelecimentos" }

type Socio struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	CnpjBasico   string  `gorm:"column:cnpj_basico;size:8;index;not null" json:"cnpj_basico"`
	NomeSocio    *string `gorm:"column:nome_socio" json:"nome_socio"`
	CpfCnpjSocio *string `gorm:"column:cpf_cnpj_socio" json:"cpf_cnpj_socio"`
	Qualificacao *string `gorm:"column:qualificacao" json:"qualificacao"`
	Pais         *string `gorm:"column:pais" json:"pais"`
	DataEntrada  *string `gorm:"column:data_entrada;type:date" json:"data_entrada"`
}

func (Socio) TableName() string { return "socios" }

type Simples struct {
	CnpjBasico            string  `gorm:"column:cnpj_basico;primaryKey;size:8" json:"cnpj_basico"`
	OpcaoPeloSimples      *string `gorm:"column:opcao_pelo_simples;size:1" json:"opcao_pelo_simples"`
	DataOpcaoPeloSimples  *string `gorm:"column:data_opcao_pelo_simples;type:date" json:"data_opcao_pelo_simples"`
	DataExclusaoDoSimples *string `gorm:"column:data_exclusao_do_simples;type:date" json:"data_exclusao_do_simples"`
	OpcaoPeloMei          *string `gorm:"column:opcao_pelo_mei;size:1" json:"opcao_pelo_mei"`
	DataOpcaoPeloMei      *string `gorm:"column:data_opcao_pelo_mei;type:date" json:"data_opcao_pelo_mei"`
	DataExclusaoDoMei     *string `gorm:"column:data_exclusao_do_mei;type:date" json:"data_exclusao_do_mei"`
}

func (Simples) TableName() string { return "simples" }

type Cnae struct {
	Codigo    string `gorm:"column:codigo;primaryKey" json:"codigo"`
	Descricao string `gorm:"column:descricao;not null" json:"descricao"`
}

func (Cnae) TableName() string { return "cnaes" }

type Motivo struct {
	Codigo    string `gorm:"column:codigo;primaryKey" json:"codigo"`
	Descricao string `gorm:"column:descricao;not null" json:"descricao"`
}

func (Motivo) TableName() string { return "motivos" }

type Municipio struct {
	Codigo    string `gorm:"column:codigo;primaryKey" json:"codigo"`
	Descricao string `gorm:"column:descricao;not null" json:"descricao"`
}

func (Municipio) TableName() string { return "municipios" }

type Natureza struct {
	Codigo    string `gorm:"column:codigo;primaryKey" json:"codigo"`
	Descricao string `gorm:"column:descricao;not null" json:"descricao"`
}

func (Natureza) TableName() string { return "naturezas" }

type Pais struct {
	Codigo    string `gorm:"column:codigo;primaryKey" json:"codigo"`
	Descricao string `gorm:"column:descricao;not null" json:"descricao"`
}

func (Pais) TableName() string { return "paises" }

type Qualificacao struct {
	Codigo    string `gorm:"column:codigo;primaryKey" json:"codigo"`
	Descricao string `gorm:"column:descricao;not null" json:"descricao"`
}

func (Qualificacao) TableName() string { return "qualificacoes" }

// --- read API response shapes ---

type EmpresaOut struct {
	CnpjBasico                string  `json:"cnpj_basico" gorm:"column:cnpj_basico"`
	RazaoSocial               *string `json:"razao_social" gorm:"column:razao_social"`
	NaturezaJuridica          *string `json:"natureza_juridica" gorm:"column:natureza_juridica"`
	NaturezaJuridicaDescricao *string `json:"natureza_juridica_descricao" gorm:"column:natureza_juridica_descricao"`
	CapitalSocial             *string `json:"capital_social" gorm:"column:capital_social"`
	PorteEmpresa              *string `json:"porte_empresa" gorm:"column:porte_empresa"`
	OpcaoPeloSimples          *string `json:"opcao_pelo_simples" gorm:"column:opcao_pelo_simples"`
	DataOpcaoPeloSimples      *string `json:"data_opcao_pelo_simples" gorm:"column:data_opcao_pelo_simples"`
	DataExclusaoDoSimples     *string `json:"data_exclusao_do_simples" gorm:"column:data_exclusao_do_simples"`
	OpcaoPeloMei              *string `json:"opcao_pelo_mei" gorm:"column:opcao_pelo_mei"`
	DataOpcaoPeloMei          *string `json:"data_opcao_pelo_mei" gorm:"column:data_opcao_pelo_mei"`
	DataExclusaoDoMei         *string `json:"data_exclusao_do_mei" gorm:"column:data_exclusao_do_mei"`
}

type EstabelecimentoOut struct {
	ID                      uint    `json:"id" gorm:"column:id"`
	CnpjCompleto            string  `json:"cnpj_completo" gorm:"column:cnpj_completo"`
	CnpjBasico              string  `json:"cnpj_basico" gorm:"column:cnpj_basico"`
	NomeFantasia            *string `json:"nome_fantasia" gorm:"column:nome_fantasia"`
	Situacao                *string `json:"situacao" gorm:"column:situacao"`
	Uf                      *string `json:"uf" gorm:"column:uf"`
	Municipio               *string `json:"municipio" gorm:"column:municipio"`
	MunicipioDescricao      *string `json:"municipio_descricao" gorm:"column:municipio_descricao"`
	CnaePrincipal           *string `json:"cnae_principal" gorm:"column:cnae_principal"`
	CnaePrincipalDescricao  *string `json:"cnae_principal_descricao" gorm:"column:cnae_principal_descricao"`
	CnaeSecundario          *string `json:"cnae_secundario" gorm:"column:cnae_secundario"`
	Pais                    *string `json:"pais" gorm:"column:pais"`
	PaisDescricao           *string `json:"pais_descricao" gorm:"column:pais_descricao"`
	Motivo                  *string `json:"motivo" gorm:"column:motivo"`
	MotivoDescricao         *string `json:"motivo_descricao" gorm:"column:motivo_descricao"`
}

type SocioOut struct {
	ID                    uint    `json:"id" gorm:"column:id"`
	CnpjBasico            string  `json:"cnpj_basico" gorm:"column:cnpj_basico"`
	NomeSocio             *string `json:"nome_socio" gorm:"column:nome_socio"`
	CpfCnpjSocio          *string `json:"cpf_cnpj_socio" gorm:"column:cpf_cnpj_socio"`
	Qualificacao          *string `json:"qualificacao" gorm:"column:qualificacao"`
	QualificacaoDescricao *string `json:"qualificacao_descricao" gorm:"column:qualificacao_descricao"`
	Pais                  *string `json:"pais" gorm:"column:pais"`
	PaisDescricao         *string `json:"pais_descricao" gorm:"column:pais_descricao"`
}

type CNPJResponse struct {
	Empresa          *EmpresaOut          `json:"empresa"`
	Estabelecimentos []EstabelecimentoOut `json:"estabelecimentos"`
	Socios           []SocioOut           `json:"socios"`
}

type SearchResult struct {
	Resultados []Empresa `json:"resultados"`
}
