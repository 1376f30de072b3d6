package permissions

// Names of the modules whose screens live in this repository.
const (
	ModuleModules     = "MODULOS"
	ModuleRoles       = "ROLES"
	ModulePermissions = "PERMISOS"
	ModuleUsers       = "USUARIOS"
	ModuleUserRoles   = "USUARIOS ROLES"
	ModuleAuditLogs   = "BITACORAS"
)

// AdministratorRole receives ADMINISTER on every built-in module when first created.
const AdministratorRole = "ADMINISTRADOR"

func init() {
	defs := []*ModuleDefinition{
		{Name: ModuleModules, ShortName: "Módulos", Icon: "modulos.png", Route: "/modulos", ShownInNavigation: true},
		{Name: ModuleRoles, ShortName: "Roles", Icon: "roles.png", Route: "/roles", ShownInNavigation: true},
		{Name: ModulePermissions, ShortName: "Permisos", Icon: "permisos.png", Route: "/permisos", ShownInNavigation: false},
		{Name: ModuleUsers, ShortName: "Usuarios", Icon: "usuarios.png", Route: "/usuarios", ShownInNavigation: true},
		{Name: ModuleUserRoles, ShortName: "Usuarios-Roles", Icon: "usuarios_roles.png", Route: "/usuarios_roles", ShownInNavigation: false},
		{Name: ModuleAuditLogs, ShortName: "Bitácoras", Icon: "bitacoras.png", Route: "/bitacoras", ShownInNavigation: true},
		{Name: "AUTORIDADES", ShortName: "Autoridades", Icon: "autoridades.png", Route: "/autoridades", ShownInNavigation: true},
		{Name: "DISTRITOS", ShortName: "Distritos", Icon: "distritos.png", Route: "/distritos", ShownInNavigation: true},
		{Name: "MATERIAS", ShortName: "Materias", Icon: "materias.png", Route: "/materias", ShownInNavigation: true},
		{Name: "OFICINAS", ShortName: "Oficinas", Icon: "oficinas.png", Route: "/oficinas", ShownInNavigation: true},
		{Name: "CIT CLIENTES", ShortName: "Clientes", Icon: "cit_clientes.png", Route: "/cit_clientes", ShownInNavigation: true},
		{Name: "CIT CITAS", ShortName: "Citas", Icon: "cit_citas.png", Route: "/cit_citas", ShownInNavigation: true},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
