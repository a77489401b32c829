package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<?xml version="1.0" encoding="utf-8"?>
<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx">
	<edmx:Reference Uri="/sap/opu/odata/IWFND/CATALOGSERVICE/Vocabularies(TechnicalName='%2FIWBEP%2FVOC_UI',Version='0001')/$value">
		<edmx:Include Namespace="com.sap.vocabularies.UI.v1" Alias="UI"/>
	</edmx:Reference>
	<edmx:Reference Uri="/sap/opu/odata/IWFND/CATALOGSERVICE/Vocabularies(TechnicalName='%2FIWBEP%2FVOC_COMMUNICATION',Version='0001')/$value">
		<edmx:Include Namespace="com.sap.vocabularies.Communication.v1" Alias="Communication"/>
	</edmx:Reference>
	<edmx:DataServices>
		<Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="zanno4sample_anno_mdl.v1">
			<Annotations Target="SEPMRA_PROD_MAN.Product">
				<Annotation Term="UI.HeaderInfo">
					<Record>
						<PropertyValue Property="TypeName" String="Product"/>
						<PropertyValue Property="TypeNamePlural" String="Products"/>
						<PropertyValue Property="Title">
							<Record Type="UI.DataField">
								<PropertyValue Property="Value" Path="Name"/>
							</Record>
						</PropertyValue>
						<PropertyValue Property="Description">
							<Record Type="UI.DataField">
								<PropertyValue Property="Value" Path="Description"/>
							</Record>
						</PropertyValue>
					</Record>
				</Annotation>
				<Annotation Term="com.sap.vocabularies.UI.v1.LineItem">
					<Collection>
						<Record Type="com.sap.vocabularies.UI.v1.DataField">
							<PropertyValue Property="Value" Path="ProductID"/>
							<PropertyValue Property="Label" String="Product ID"/>
							<Annotation Term="com.sap.vocabularies.UI.v1.Importance" EnumMember="com.sap.vocabularies.UI.v1.ImportanceType/High"/>
						</Record>
						<Record Type="com.sap.vocabularies.UI.v1.DataField">
							<PropertyValue Property="Value" Path="Price"/>
							<PropertyValue Property="Label" String="Unit Price"/>
							<Annotation Term="com.sap.vocabularies.UI.v1.Importance" EnumMember="com.sap.vocabularies.UI.v1.ImportanceType/Medium"/>
						</Record>
						<Record Type="com.sap.vocabularies.UI.v1.DataFieldForAction">
							<PropertyValue Property="Label" String="Copy"/>
							<PropertyValue Property="Action" String="SEPMRA_PROD_MAN.SEPMRA_PROD_MAN_Entities/CopyProduct"/>
						</Record>
					</Collection>
				</Annotation>
				<Annotation Term="UI.SelectionFields">
					<Collection>
						<PropertyPath>Category</PropertyPath>
						<PropertyPath>SupplierName</PropertyPath>
					</Collection>
				</Annotation>
				<Annotation Term="UI.FieldGroup" Qualifier="TechnicalData">
					<Record>
						<PropertyValue Property="Label" String="Technical Data"/>
						<PropertyValue Property="Data">
							<Collection>
								<Record Type="UI.DataField">
									<PropertyValue Property="Value" Path="Weight"/>
								</Record>
								<Record Type="UI.DataField">
									<PropertyValue Property="Value" Path="Depth"/>
								</Record>
							</Collection>
						</PropertyValue>
					</Record>
				</Annotation>
			</Annotations>
			<Annotations Target="SEPMRA_PROD_MAN.Supplier">
				<Annotation Term="Communication.Contact">
					<Record>
						<PropertyValue Property="fn" Path="FormattedName"/>
						<PropertyValue Property="org" Path="CompanyName"/>
						<PropertyValue Property="tel">
							<Collection>
								<Record>
									<PropertyValue Property="type" EnumMember="Communication.PhoneType/work"/>
									<PropertyValue Property="uri" Path="PhoneNumber"/>
								</Record>
							</Collection>
						</PropertyValue>
						<PropertyValue Property="email">
							<Collection>
								<Record>
									<PropertyValue Property="address" Path="EmailAddress"/>
								</Record>
							</Collection>
						</PropertyValue>
					</Record>
				</Annotation>
			</Annotations>
		</Schema>
	</edmx:DataServices>
</edmx:Edmx>`

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "4.0", doc.Version)
	assert.Equal(t, []string{
		"SEPMRA_PROD_MAN.Product",
		"SEPMRA_PROD_MAN.Supplier",
	}, doc.Targets())
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	_, err := Parse([]byte(`<edmx:Edmx Version="4.0" xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx"><edmx:DataServices/></edmx:Edmx>`))
	require.Error(t, err)

	_, err = Parse([]byte("not xml at all"))
	require.Error(t, err)
}

func TestTermAliasNormalization(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	// The document uses the fully qualified term; lookup works via alias
	ann := doc.Annotation("SEPMRA_PROD_MAN.Product", "UI.LineItem")
	require.NotNil(t, ann)

	// ... and via the fully qualified name
	ann = doc.Annotation("SEPMRA_PROD_MAN.Product", "com.sap.vocabularies.UI.v1.LineItem")
	require.NotNil(t, ann)

	assert.Nil(t, doc.Annotation("SEPMRA_PROD_MAN.Product", "UI.Chart"))
	assert.Nil(t, doc.Annotation("Unknown.Target", "UI.LineItem"))
}

func TestLineItem(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	fields := doc.LineItem("SEPMRA_PROD_MAN.Product")
	require.Len(t, fields, 3)

	assert.Equal(t, DataField{
		Type:       "DataField",
		Label:      "Product ID",
		Value:      "ProductID",
		Importance: "High",
	}, fields[0])
	assert.Equal(t, "Medium", fields[1].Importance)

	action := fields[2]
	assert.Equal(t, "DataFieldForAction", action.Type)
	assert.Equal(t, "Copy", action.Label)
	assert.Equal(t, "SEPMRA_PROD_MAN.SEPMRA_PROD_MAN_Entities/CopyProduct", action.Action)
	assert.Empty(t, action.Importance)
}

func TestHeaderInfo(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	info := doc.HeaderInfo("SEPMRA_PROD_MAN.Product")
	require.NotNil(t, info)
	assert.Equal(t, "Product", info.TypeName)
	assert.Equal(t, "Products", info.TypeNamePlural)
	assert.Equal(t, "Name", info.Title)
	assert.Equal(t, "Description", info.Description)

	assert.Nil(t, doc.HeaderInfo("SEPMRA_PROD_MAN.Supplier"))
}

func TestSelectionFields(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, []string{"Category", "SupplierName"}, doc.SelectionFields("SEPMRA_PROD_MAN.Product"))
	assert.Nil(t, doc.SelectionFields("SEPMRA_PROD_MAN.Supplier"))
}

func TestFieldGroup(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	fields := doc.FieldGroup("SEPMRA_PROD_MAN.Product", "TechnicalData")
	require.Len(t, fields, 2)
	assert.Equal(t, "Weight", fields[0].Value)
	assert.Equal(t, "Depth", fields[1].Value)

	assert.Nil(t, doc.FieldGroup("SEPMRA_PROD_MAN.Product", "NoSuchQualifier"))
}

func TestContact(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument))
	require.NoError(t, err)

	contact := doc.Contact("SEPMRA_PROD_MAN.Supplier")
	require.NotNil(t, contact)

	assert.Contains(t, contact, ContactField{Property: "fn", Path: "FormattedName"})
	assert.Contains(t, contact, ContactField{Property: "org", Path: "CompanyName"})
	assert.Contains(t, contact, ContactField{Property: "tel.uri", Path: "PhoneNumber"})
	assert.Contains(t, contact, ContactField{Property: "email.address", Path: "EmailAddress"})

	// The enum-typed slot descriptors are not data paths
	for _, field := range contact {
		assert.NotEqual(t, "tel.type", field.Property)
	}
}
